package port

// Notifier shows transient user notifications.
// A loading notification is keyed by id and later replaced by a success or error with the same id.
type Notifier interface {
	ShowError(msg string)
	ShowSuccess(msg string)
	ShowLoading(msg, id string)
	UpdateToSuccess(id, msg string)
	UpdateToError(id, msg string)
}
