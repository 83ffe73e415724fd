package kiosk

// User facing texts. The kiosk speaks Spanish, like the backend.
const (
	MsgLoadingProducts = "Cargando productos..."
	MsgNoProducts      = "No hay productos disponibles."
	MsgListError       = "Error al cargar los productos. Intentá nuevamente."

	MsgGenerating      = "Generando código de pago..."
	MsgScanToPay       = "Escaneá el código QR para pagar."
	MsgPaymentErrorFmt = "Error al generar el pago: %s"
	MsgUnknownError    = "error desconocido"
	MsgPaymentFailed   = "No se pudo generar el código de pago. Intentá nuevamente."

	MsgSaving         = "Guardando producto..."
	MsgProductCreated = "Producto agregado correctamente."
	MsgCreateErrorFmt = "Error al agregar el producto: %s"
	MsgCreateFailed   = "No se pudo agregar el producto."
)
