package pwdriver

// Snippets evaluated against a single element handle. Each takes the element
// as its first argument.
const (
	// Returns null for a missing attribute so it can be told apart from "".
	attributeScript = `(el, name) => el.hasAttribute(name) ? el.getAttribute(name) : null`

	selectedOptionScript = `(el) => {
		if (el.tagName === 'SELECT') {
			const opt = el.options[el.selectedIndex];
			return opt ? opt.text : '';
		}
		return el.value === undefined ? '' : String(el.value);
	}`

	selectedStateScript = `(el) => !!(el.checked || el.selected || el.getAttribute('aria-selected') === 'true' || el.getAttribute('aria-checked') === 'true')`

	scrollIntoViewScript = `(el) => el.scrollIntoView({behavior: 'instant', block: 'center', inline: 'center'})`
)
