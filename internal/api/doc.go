// Package api exposes the route table over HTTP: the lookup endpoint
// /api/{group}/{type}, the JSON documentation at /api/doc, the HTML
// documentation page and the middleware chain shared by all of them.
package api
