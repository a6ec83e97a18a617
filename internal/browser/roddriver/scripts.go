package roddriver

// rod binds the element to this.
const (
	dispatchClickScript = `() => this.click()`

	scrollIntoViewScript = `() => this.scrollIntoView({behavior: 'instant', block: 'center', inline: 'center'})`

	selectedOptionScript = `() => {
		if (this.tagName === 'SELECT') {
			const opt = this.options[this.selectedIndex];
			return opt ? opt.text : '';
		}
		return this.value === undefined ? '' : String(this.value);
	}`

	selectedStateScript = `() => !!(this.checked || this.selected || this.getAttribute('aria-selected') === 'true' || this.getAttribute('aria-checked') === 'true')`

	enabledScript = `() => !this.disabled && !this.closest('fieldset[disabled]')`

	clearScript = `() => {
		if ('value' in this) {
			this.value = '';
			this.dispatchEvent(new Event('input', {bubbles: true}));
			this.dispatchEvent(new Event('change', {bubbles: true}));
		} else if (this.isContentEditable) {
			this.textContent = '';
		}
	}`
)
