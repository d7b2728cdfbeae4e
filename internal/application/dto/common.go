package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AckResponse acuse de recibo de una operación disparada en segundo plano.
type AckResponse struct {
	Mensaje string `json:"mensaje"`
}
