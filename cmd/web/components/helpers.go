// Package components renders the search page and the fragments pushed to it
// over the websocket. The markup lives in components.templ; run templ generate
// after editing it.
package components

import "strconv"

const searchPlaceholder = "Search hosts, e.g. services.service_name: HTTP"

// loadingAttr formats the data-loading attribute. The stylesheet dims the
// result list while it is "true".
func loadingAttr(loading bool) string {
	return strconv.FormatBool(loading)
}
