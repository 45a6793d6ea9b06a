// Package server implements the Global Chat fan-out server.
//
// Clients connect over WebSocket, register a display name, and exchange chat
// messages that the Hub broadcasts to every registered session. The Registry
// tracks who is online; joins, leaves and online-count changes are announced
// to everyone. The package also carries the HTTP surface (status, health,
// upgrade), origin checks, per-IP rate limiting and environment configuration.
package server
