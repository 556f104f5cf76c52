// Package controller is the REST client of the test controller.
//
// Every call logs in with the OIDC password grant on first use and sends the
// access token as a bearer token. An unaccepted EULA is accepted on the way,
// either after asking the user or when CYPERF_EULA_ACCEPTED is true.
//
// HTTP outcomes map onto the errors of pkg/errors:
//
//	connection error, 5xx  ──► ServiceUnavailableError
//	404                    ──► ResourceNotFoundError
//	any other non-2xx      ──► RemoteOperationError
//
// Long-running operations (configuration import, traffic start and stop)
// return an AsyncJob whose URL is polled with GetOperation.
package controller
