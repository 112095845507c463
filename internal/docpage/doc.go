// Package docpage renders the HTML documentation page from the generated
// route documentation using Handlebars templates.
package docpage
