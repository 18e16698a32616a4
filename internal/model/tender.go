package model

import "fmt"

// Tender is a payment method accepted at the register.
// Values: "cash" | "card" | "yape" | "plin" | "transfer"
type Tender string

const (
	TenderCash     Tender = "cash"
	TenderCard     Tender = "card"
	TenderYape     Tender = "yape"
	TenderPlin     Tender = "plin"
	TenderTransfer Tender = "transfer"
)

// TenderKind groups tenders by how they settle.
type TenderKind string

const (
	KindCash         TenderKind = "cash"
	KindCard         TenderKind = "card"
	KindMobileWallet TenderKind = "mobile_wallet"
	KindOtherDigital TenderKind = "other_digital"
)

// Tenders lists every accepted tender in display order.
var Tenders = []Tender{TenderCash, TenderCard, TenderYape, TenderPlin, TenderTransfer}

// ParseTender rejects anything outside the closed set.
func ParseTender(s string) (Tender, error) {
	t := Tender(s)
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("metodo de pago desconocido: %q", s)
}

func (t Tender) Valid() bool {
	switch t {
	case TenderCash, TenderCard, TenderYape, TenderPlin, TenderTransfer:
		return true
	}
	return false
}

func (t Tender) Kind() TenderKind {
	switch t {
	case TenderCash:
		return KindCash
	case TenderCard:
		return KindCard
	case TenderYape, TenderPlin:
		return KindMobileWallet
	default:
		return KindOtherDigital
	}
}

// AffectsCashDrawer is true only for tenders that physically enter the drawer.
// Every other tender is folded into the digital total.
func (t Tender) AffectsCashDrawer() bool { return t.Kind() == KindCash }

// Label is the name written to the external order store.
func (t Tender) Label() string {
	switch t {
	case TenderCash:
		return "Efectivo"
	case TenderCard:
		return "Tarjeta"
	case TenderYape:
		return "Yape"
	case TenderPlin:
		return "Plin"
	case TenderTransfer:
		return "Transferencia"
	}
	return string(t)
}
