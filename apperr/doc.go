// Package apperr defines the error vocabulary shared by the services and the
// REST layer. Every failure a caller can act on carries a Code; validation
// failures additionally carry a field -> messages map collected in one pass.
package apperr
