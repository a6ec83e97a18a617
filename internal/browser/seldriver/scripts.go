package seldriver

// WebDriver scripts are function bodies; the element is arguments[0].
const (
	scrollIntoViewScript = `arguments[0].scrollIntoView({block: 'center', inline: 'center'}); return true;`

	dispatchClickScript = `arguments[0].click(); return true;`

	selectedOptionScript = `var el = arguments[0];
		if (el.tagName === 'SELECT') {
			var opt = el.options[el.selectedIndex];
			return opt ? opt.text : '';
		}
		return el.value === undefined ? '' : String(el.value);`
)
