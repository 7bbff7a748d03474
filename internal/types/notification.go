package types

// NotificationSeverity is the urgency of a user-facing billing notification
type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
	NotificationSeveritySuccess NotificationSeverity = "success"
)

// NotificationKind identifies the billing condition that produced a notification.
// The kind doubles as the de-duplication id for repeated emissions of the same
// condition.
type NotificationKind string

const (
	NotificationKindExpiryWarning  NotificationKind = "subscription_expiry_warning"
	NotificationKindExpiryUrgent   NotificationKind = "subscription_expiry_urgent"
	NotificationKindExpired        NotificationKind = "subscription_expired"
	NotificationKindUpgradePrompt  NotificationKind = "upgrade_prompt"
	NotificationKindPaymentSuccess NotificationKind = "payment_success"
	NotificationKindPaymentFailure NotificationKind = "payment_failure"
)
