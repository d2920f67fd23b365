package agent

import (
	"fmt"
	"strings"
)

func buildSystemPrompt(product string, sites []string, sentinel string) string {
	var list strings.Builder
	for i, s := range sites {
		if i > 0 {
			list.WriteString("\n")
		}
		list.WriteString("• " + s)
	}

	return fmt.Sprintf(`You are an expert e-commerce research agent.

Goal: For every site below, find the exact product page for
    '%s'
and extract:
  – price (with currency)
  – availability (e.g. 'in-stock', 'sold out')
  – url (the exact url of the product page)
  – notes (any additional notes about your research)

The sites are:
%s

Rules:
- Start with web_search and look for the product across the sites. Use one web search at a time, then wait to get results then go on. For filter_year leave blank.
- The product name may be different across different sites, try to broaden it.
- Experiment also with searching for the product category and then filtering for the specific product.
- Once you have a candidate URL, call visit_url to read the page to get the details.
- Do a deep research on each page, use find_on_page, find_next, page_down and page_up to navigate the page.
- Some pages will have bot blockers and you will receive no content back or error. Use screenshot tool on those urls and you will receive back description produced by vision model.
- If product truly not found, mark status 'fail' and leave price/availability empty.
- After each tool call, write down your findings for each product as you move along.
- When you have finished researching ALL sites, end your message with: "%s"
`, product, list.String(), sentinel)
}

func buildExtractionPrompt(sites []string) string {
	quoted := make([]string, len(sites))
	for i, s := range sites {
		quoted[i] = fmt.Sprintf("%q", s)
	}

	return fmt.Sprintf(`Your task is to convert findings of a web agent to json.
From the research notes below, produce a JSON object with these exact website keys: [%s].

For each website, extract any price and availability info found. If no info was found, mark status as 'fail'.

Return ONLY this JSON format:
{
  "<website>": {"status": "success|fail", "price": "...", "availability": "...", "url": "...", "notes": "..."},
  ...
}`, strings.Join(quoted, ", "))
}
