package services

// ServiceContainer holds instances of all the application services.
// Handlers receive this container and depend only on the facades inside it.
type ServiceContainer struct {
	Currency CurrencySvcFacade
}
