package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"
	AuthOTPInvalid         = "AUTH_OTP_INVALID"
	AuthOTPExpired         = "AUTH_OTP_EXPIRED"
	AuthAlreadyVerified    = "AUTH_ALREADY_VERIFIED"
	AuthAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	AuthCaptchaFailed      = "AUTH_CAPTCHA_FAILED"
	AuthResendTooSoon      = "AUTH_RESEND_TOO_SOON"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductOutOfStock   = "PRODUCT_OUT_OF_STOCK"
	ProductNameExists   = "PRODUCT_NAME_EXISTS"
	ProductInvalidPrice = "PRODUCT_INVALID_PRICE"

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartEmpty           = "CART_EMPTY"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"
	OrderNotCancelable = "ORDER_NOT_CANCELABLE"
	OrderTotalMismatch = "ORDER_TOTAL_MISMATCH"

	// ==================== Payments (PAYMENT_) ====================
	PaymentNotFound           = "PAYMENT_NOT_FOUND"
	PaymentDuplicateReference = "PAYMENT_DUPLICATE_REFERENCE"
	PaymentVerificationFailed = "PAYMENT_VERIFICATION_FAILED"
	PaymentGatewayError       = "PAYMENT_GATEWAY_ERROR"

	// ==================== Chat (CHAT_) ====================
	ChatThreadNotFound    = "CHAT_THREAD_NOT_FOUND"
	ChatMessageNotFound   = "CHAT_MESSAGE_NOT_FOUND"
	ChatCannotSendMessage = "CHAT_CANNOT_SEND"

	// ==================== Notifications (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
