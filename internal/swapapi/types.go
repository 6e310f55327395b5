package swapapi

// ServerInfo serverinfo
type ServerInfo struct {
	Identifier string `json:"identifier"`
	Version    string `json:"version"`
	ChainID    string `json:"chainID"`
	Factory    string `json:"factory"`
}

// FactoryInfo factory info
type FactoryInfo struct {
	Address             string `json:"address"`
	Owner               string `json:"owner"`
	Paused              bool   `json:"paused"`
	Bypass              bool   `json:"bypass"`
	RescueDelay         uint64 `json:"rescueDelay"`
	CancelSkewTolerance uint64 `json:"cancelSkewTolerance"`
	DeployedCount       int    `json:"deployedCount"`
}

// EscrowInfo escrow info
type EscrowInfo struct {
	Address        string `json:"address"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	ImmutablesHash string `json:"immutablesHash"`
	DeployedAt     uint64 `json:"deployedAt"`
	Secret         string `json:"secret,omitempty"`
}

// EventInfo one journal entry
type EventInfo struct {
	Type      string `json:"type"`
	Escrow    string `json:"escrow"`
	OrderHash string `json:"orderHash"`
	Caller    string `json:"caller"`
	Secret    string `json:"secret,omitempty"`
	Asset     string `json:"asset,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Time      uint64 `json:"time"`
}
