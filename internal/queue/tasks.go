package queue

const (
	TypeRenderQR  = "pass:render_qr"
	TypeSendEmail = "pass:send_email"
)

type RenderQRPayload struct {
	PassID string `json:"pass_id"`
	Code   string `json:"code"`
}

type SendEmailPayload struct {
	PassID       string `json:"pass_id"`
	Code         string `json:"code"`
	VisitorName  string `json:"visitor_name"`
	VisitorEmail string `json:"visitor_email"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
}
