package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionStartMatching        = "start_matching"
	ActionHandleDriverResponse = "handle_driver_response"
	ActionCancelMatching       = "cancel_matching"
	ActionMatchingRecover      = "matching_recover"
	ActionPerDriverTimeout     = "per_driver_timeout"
	ActionPerBookingTimeout    = "per_booking_timeout"
	ActionBroadcastOffer       = "broadcast_offer"
	ActionAdminAlert           = "admin_alert"
)
