// Package routes holds the route table served by the API: the JSON value
// type stored for each route, the lenient loader that reads the table from
// API_ROUTES_CONFIG or a routes file, the two-level lookup, and the
// documentation generated from a table.
package routes
