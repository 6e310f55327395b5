package swapapi

import (
	"github.com/crosslock/CrossChain-Escrow/common/hexutil"
	"github.com/crosslock/CrossChain-Escrow/escrow"
)

// ConvertEscrowToEscrowInfo converts an escrow to its api view.
func ConvertEscrowToEscrowInfo(esc *escrow.Escrow) *EscrowInfo {
	info := &EscrowInfo{
		Address:        esc.Address().Hex(),
		Role:           esc.Role().String(),
		Status:         esc.Status().String(),
		ImmutablesHash: esc.ImmutablesHash().Hex(),
		DeployedAt:     esc.DeployedAt(),
	}
	if secret := esc.RevealedSecret(); len(secret) != 0 {
		info.Secret = hexutil.Encode(secret)
	}
	return info
}

// ConvertEventToEventInfo converts a ledger journal entry to its api view.
func ConvertEventToEventInfo(ev *escrow.Event) *EventInfo {
	info := &EventInfo{
		Type:      string(ev.Type),
		Escrow:    ev.Escrow.Hex(),
		OrderHash: ev.OrderHash.Hex(),
		Caller:    ev.Caller.Hex(),
		Time:      ev.Time,
	}
	if len(ev.Secret) != 0 {
		info.Secret = hexutil.Encode(ev.Secret)
	}
	if !ev.Asset.IsZero() || ev.Amount != nil {
		info.Asset = ev.Asset.Hex()
	}
	if ev.Amount != nil {
		info.Amount = ev.Amount.String()
	}
	return info
}

// ConvertEventsToEventInfos converts a journal slice to its api view.
func ConvertEventsToEventInfos(evs []escrow.Event) []*EventInfo {
	infos := make([]*EventInfo, len(evs))
	for i := range evs {
		infos[i] = ConvertEventToEventInfo(&evs[i])
	}
	return infos
}
