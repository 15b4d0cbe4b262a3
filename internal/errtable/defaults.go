package errtable

import "strconv"

var classNames = map[int]string{
	303: "SEE_OTHER",
	400: "BAD_REQUEST",
	401: "UNAUTHORIZED",
	403: "FORBIDDEN",
	406: "NOT_ACCEPTABLE",
	420: "FLOOD",
	500: "INTERNAL_SERVER_ERROR",
	503: "SERVICE_UNAVAILABLE",
}

var classDescriptions = map[int]string{
	303: "The request must be repeated against another data center",
	400: "The query contains errors",
	401: "The method requires an authorized session",
	403: "Privacy violation",
	406: "The request cannot be satisfied in the current state",
	420: "The method was invoked too many times",
	500: "An internal server error occurred",
	503: "The service is temporarily unavailable",
}

// DefaultClassName names the class of a code no table names.
func DefaultClassName(code int) string {
	if n, ok := classNames[code]; ok {
		return n
	}
	return "CODE_" + strconv.Itoa(code)
}

// DefaultDescription is the generic description of a code, or "".
func DefaultDescription(code int) string {
	return classDescriptions[code]
}
