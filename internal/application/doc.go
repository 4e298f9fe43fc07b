// Package application provides application initialization and dependency wiring.
// It builds the currency formatter and the filter registry once, then hands
// them to the API handlers and to the server-rendered index page, keeping the
// main package focused on CLI parsing and orchestration.
package application
