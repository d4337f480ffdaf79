package browser

// DOM reads evaluated in the page. Selectors are substituted as JSON string literals.
const (
	existsJS = `document.querySelector(%s) !== null`

	visibleJS = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === "hidden" || style.display === "none") return false;
	const r = el.getBoundingClientRect();
	return r.width > 0 && r.height > 0;
})()`

	centerJS = `(() => {
	const el = document.querySelector(%s);
	if (!el) return {found: false};
	el.scrollIntoView({block: "center", inline: "center"});
	const r = el.getBoundingClientRect();
	return {found: true, x: r.left + r.width / 2, y: r.top + r.height / 2};
})()`

	textJS = `(() => {
	const el = document.querySelector(%s);
	if (!el) return {found: false, text: ""};
	return {found: true, text: (el.textContent || "").trim()};
})()`

	anchorJS = `(() => {
	const el = document.querySelector(%s);
	if (!el) return {found: false};
	const text = (n) => n ? (n.textContent || "").trim() : null;
	const parent = el.parentElement;
	const grand = parent ? parent.parentElement : null;
	return {
		found: true,
		value: text(el),
		change: parent ? text(parent.children[%d]) : null,
		changePercent: parent ? text(parent.children[%d]) : null,
		time: grand ? text(grand.children[%d]) : null,
	};
})()`
)
