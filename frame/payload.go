package frame

// Payload is the body a frame client posts on every button press.
// UntrustedData is what the client claims; TrustedData is the signed
// message only the hub can verify.
type Payload struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   *TrustedData  `json:"trustedData,omitempty"`
}

type UntrustedData struct {
	FID           uint64  `json:"fid"`
	URL           string  `json:"url"`
	MessageHash   string  `json:"messageHash"`
	Timestamp     int64   `json:"timestamp"`
	Network       int     `json:"network"`
	ButtonIndex   int     `json:"buttonIndex"`
	InputText     string  `json:"inputText"`
	TransactionID string  `json:"transactionId"`
	Address       string  `json:"address"`
	CastID        *CastID `json:"castId,omitempty"`
}

type CastID struct {
	FID  uint64 `json:"fid"`
	Hash string `json:"hash"`
}

type TrustedData struct {
	MessageBytes string `json:"messageBytes"`
}

func (p *Payload) fid() uint64 {
	if p == nil {
		return 0
	}
	return p.UntrustedData.FID
}

func (p *Payload) address() string {
	if p == nil {
		return ""
	}
	return p.UntrustedData.Address
}

func (p *Payload) inputText() string {
	if p == nil {
		return ""
	}
	return p.UntrustedData.InputText
}

func (p *Payload) transactionID() string {
	if p == nil {
		return ""
	}
	return p.UntrustedData.TransactionID
}

func (p *Payload) signed() bool {
	return p != nil && p.TrustedData != nil
}
