package invoice

// SaveStatus is the state of the most recent persistence attempt
type SaveStatus string

const (
	SaveStatusIdle   SaveStatus = "idle"
	SaveStatusSaving SaveStatus = "saving"
	SaveStatusSaved  SaveStatus = "saved"
	SaveStatusFailed SaveStatus = "failed"
)

// StatusListener is notified on every save status change.
// err is set only for SaveStatusFailed.
type StatusListener interface {
	OnSaveStatus(ownerID string, status SaveStatus, err error)
}

// StatusListenerFunc adapts a function to StatusListener
type StatusListenerFunc func(ownerID string, status SaveStatus, err error)

// OnSaveStatus implements StatusListener
func (f StatusListenerFunc) OnSaveStatus(ownerID string, status SaveStatus, err error) {
	f(ownerID, status, err)
}
