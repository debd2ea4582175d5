/*
Package http implements the REST surface of the editor backend.

Routes:

	GET  /                           status
	GET  /health                     health and current preview state
	GET  /topics                     topics with labels and entry symbols
	GET  /topics/:topic              stored script and stylesheet
	PUT  /topics/:topic/files/:kind  update a script (js) or stylesheet (css)
	GET  /workspace/active           active topic
	PUT  /workspace/active           switch the active topic
	GET  /preview                    latest snapshot
	GET  /preview/document           preview HTML with ETag
	POST /preview/events             dispatch an event to a rendered node

Errors are JSON bodies of the form {"error": "..."}.
*/
package http
