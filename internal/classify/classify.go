package classify

import (
	"strings"
)

// Marcadores que devuelve el endpoint de reembolso dentro del texto de respuesta
const (
	MarkerAuthInvalid = "token无效，请重新登录"
	MarkerLockWait    = "Lock wait timeout exceeded"
	MarkerUnsupported = "订单不支持退款"
)

// Kind clasificación de una respuesta 2xx del endpoint
type Kind int

const (
	KindSuccess Kind = iota
	KindAuthInvalid
	KindLockWait
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindLockWait:
		return "lock_wait"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Response clasifica el cuerpo de una respuesta exitosa.
// Prioridad: token inválido, lock wait, orden no reembolsable; el resto es éxito.
func Response(body string) Kind {
	switch {
	case strings.Contains(body, MarkerAuthInvalid):
		return KindAuthInvalid
	case strings.Contains(body, MarkerLockWait):
		return KindLockWait
	case strings.Contains(body, MarkerUnsupported):
		return KindUnsupported
	default:
		return KindSuccess
	}
}
