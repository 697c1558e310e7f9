package notificator

import "context"

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Event: типизированное уведомление для клиента вместо тоста
type Event struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func Success(description string) Event {
	return Event{Title: "Success", Description: description, Variant: VariantDefault}
}

// Failure несёт сырое сообщение ошибки
func Failure(err error) Event {
	return Event{Title: "Error", Description: err.Error(), Variant: VariantDestructive}
}

type Notificator interface {
	// Notify: сообщение об ошибке админу
	Notify(ctx context.Context, err error, details string) error
}
