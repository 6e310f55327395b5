package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crosslock/CrossChain-Escrow/internal/swapapi"
	"github.com/crosslock/CrossChain-Escrow/params"
	"github.com/gorilla/mux"
)

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	// Note: must set header before write header
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if err == nil {
		jsonData, _ := json.Marshal(resp)
		_, _ = w.Write(jsonData)
	} else {
		fmt.Fprintln(w, err.Error())
	}
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	version := params.VersionWithMeta
	writeResponse(w, version, nil)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	serverInfo := swapapi.GetServerInfo()
	writeResponse(w, serverInfo, nil)
}

// FactoryInfoHandler handler
func FactoryInfoHandler(w http.ResponseWriter, r *http.Request) {
	factoryInfo := swapapi.GetFactoryInfo()
	writeResponse(w, factoryInfo, nil)
}

// GetEscrowInfoHandler handler
func GetEscrowInfoHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.GetEscrowInfo(vars["immutableshash"])
	writeResponse(w, res, err)
}

// PredictAddressHandler handler
func PredictAddressHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	role := "src"
	vals := r.URL.Query()
	if roleVals, exist := vals["role"]; exist {
		role = roleVals[0]
	}
	res, err := swapapi.PredictAddress(vars["immutableshash"], role)
	writeResponse(w, res, err)
}

// IsWhitelistedHandler handler
func IsWhitelistedHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.IsWhitelisted(vars["address"])
	writeResponse(w, res, err)
}

// GetOrderEventsHandler handler
func GetOrderEventsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.GetOrderEvents(vars["orderhash"])
	writeResponse(w, res, err)
}
