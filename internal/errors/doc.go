// Package errors defines AppError, the typed error shared by every layer.
//
// Constructors such as NewParsingError and NewStorageError set the
// ErrorType; callers classify with TypeOf or IsType, which walk the wrap
// chain, so an AppError stays visible through step and operation wrappers.
package errors
