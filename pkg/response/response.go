package response

type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Error(code, message string, details any) Envelope {
	return Envelope{
		Code:    code,
		Message: message,
		Data:    details,
	}
}

func Success(message string, data any) Envelope {
	return Envelope{
		Code:    "OK",
		Message: message,
		Data:    data,
	}
}
