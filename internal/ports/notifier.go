package ports

type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}
