// Package service is the domain façade. Every operation runs inside
// one transactional scope under the active session's identity; tenant
// scoping always comes from the session, never from the caller.
package service
