package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrWeakCredential       = errors.New("credencial débil")
	ErrActorInvalid         = errors.New("usuario inexistente o inactivo")
	ErrHasDependents        = errors.New("el recurso tiene referencias dependientes")
	ErrInvalidCredentials   = errors.New("credenciales inválidas")
	ErrConfirmationMismatch = errors.New("la confirmación no coincide")
	ErrHasAuditReferences   = errors.New("el recurso tiene referencias de auditoría")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)

// ErrorCode es el código de retorno (rc) compartido por todas las operaciones del sistema.
type ErrorCode int

// Tabla de códigos de retorno.
const (
	CodeOK                   ErrorCode = 0
	CodeInvalidInput         ErrorCode = 1
	CodeDuplicate            ErrorCode = 2
	CodeNotFound             ErrorCode = 3
	CodeWeakCredential       ErrorCode = 4
	CodeGeneral              ErrorCode = 5
	CodeActorInvalid         ErrorCode = 6
	CodeHasDependents        ErrorCode = 7
	CodeInvalidCredentials   ErrorCode = 8
	CodeConfirmationMismatch ErrorCode = 9
	CodeHasAuditReferences   ErrorCode = 10
	CodeInsufficientStock    ErrorCode = 11
)

var codeByErr = []struct {
	err  error
	code ErrorCode
}{
	{ErrInvalidInput, CodeInvalidInput},
	{ErrDuplicate, CodeDuplicate},
	{ErrNotFound, CodeNotFound},
	{ErrWeakCredential, CodeWeakCredential},
	{ErrActorInvalid, CodeActorInvalid},
	{ErrHasDependents, CodeHasDependents},
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrConfirmationMismatch, CodeConfirmationMismatch},
	{ErrHasAuditReferences, CodeHasAuditReferences},
	{ErrInsufficientStock, CodeInsufficientStock},
}

// CodeOf traduce un error al rc correspondiente. nil es CodeOK; cualquier error
// no reconocido (conexión, constraint, timeout) es CodeGeneral.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	for _, c := range codeByErr {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeGeneral
}
