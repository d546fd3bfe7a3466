package domain

// Acceptance Statuses (farmer's decision on a placed order)
const (
	AcceptancePending  = "PENDING"
	AcceptanceAccepted = "ACCEPTED"
	AcceptanceRejected = "REJECTED"
)

// Payment Statuses
const (
	PaymentStatusPaid               = "PAID"
	PaymentStatusApprovedByCustomer = "APPROVED_BY_CUSTOMER"
	PaymentStatusCompleted          = "COMPLETED"
	PaymentStatusCancelled          = "CANCELLED"
	PaymentStatusRefundRequested    = "REFUND_REQUESTED"
	PaymentStatusRefundApproved     = "REFUND_APPROVED"
	PaymentStatusRefunded           = "REFUNDED"
)

// Roles
const (
	RoleFarmer      = "farmer"
	RoleDistributor = "distributor"
	RoleCarrier     = "carrier"
	RoleCustomer    = "customer"
)

// Acceptance decisions accepted by ChangeAcceptance.
const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"
)

// Order event actions recorded in the per-order audit log.
const (
	EventOrderPlaced        = "order_placed"
	EventAcceptanceChanged  = "acceptance_changed"
	EventCarrierInvited     = "carrier_invited"
	EventCarrierAccepted    = "carrier_accepted"
	EventTemperatureLogged  = "temperature_logged"
	EventPickupRecorded     = "pickup_recorded"
	EventDeliveryRecorded   = "delivery_recorded"
	EventDamageReported     = "damage_reported"
	EventMarkedCompleted    = "marked_completed"
	EventFundsWithdrawn     = "funds_withdrawn"
	EventOrderCancelled     = "order_cancelled"
	EventRefundRequested    = "refund_requested"
	EventRefundApproved     = "refund_approved"
	EventRefundWithdrawn    = "refund_withdrawn"
)

// List Exports for API
var PaymentStatuses = []string{
	PaymentStatusPaid,
	PaymentStatusApprovedByCustomer,
	PaymentStatusCompleted,
	PaymentStatusCancelled,
	PaymentStatusRefundRequested,
	PaymentStatusRefundApproved,
	PaymentStatusRefunded,
}

var AcceptanceStatuses = []string{
	AcceptancePending,
	AcceptanceAccepted,
	AcceptanceRejected,
}

var Roles = []string{
	RoleFarmer,
	RoleDistributor,
	RoleCarrier,
	RoleCustomer,
}
