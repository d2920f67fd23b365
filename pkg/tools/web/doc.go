// Package web provides the browsing tools offered to the research model.
//
// Tool Overview:
//
// web_search: run a search and show the result page
//
// visit_url: open an absolute or relative URL, downloading binary files
//
// find_on_page: jump to the first viewport matching a query ('*' wildcards)
//
// find_next: continue the last find_on_page
//
// page_down, page_up: move one viewport
//
// screenshot: render a page and ask a vision model about it
//
// Every navigation tool returns the browser state: the page header, a
// separator line and the current viewport.
//
// Usage Example:
//
//	toolset := web.NewToolset(web.DefaultConfig(), visionProvider)
//	for _, tool := range toolset {
//	    fmt.Println(tool.ID(), tool.Description())
//	}
package web
