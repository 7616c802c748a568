// Package gateway is the single chokepoint for outbound API requests.
//
// Every request reads the current credential from the session at send time
// and attaches it as a bearer token. An authentication-rejected response
// tears the session down synchronously, before the failure is returned, so
// callers never decide on their own whether to sign out. All failures,
// transport or HTTP, come back as *common.Failure.
package gateway
