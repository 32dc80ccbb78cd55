package attributes

// intrinsics are character replacement attributes, present in every
// document.
var intrinsics = [][2]string{
	{"startsb", "["},
	{"endsb", "]"},
	{"vbar", "|"},
	{"caret", "^"},
	{"asterisk", "*"},
	{"tilde", "~"},
	{"plus", "&#43;"},
	{"backslash", "\\"},
	{"backtick", "`"},
	{"blank", ""},
	{"empty", ""},
	{"sp", " "},
	{"two-colons", "::"},
	{"two-semicolons", ";;"},
	{"nbsp", "&#160;"},
	{"deg", "&#176;"},
	{"zwsp", "&#8203;"},
	{"quot", "&#34;"},
	{"apos", "&#39;"},
	{"lsquo", "&#8216;"},
	{"rsquo", "&#8217;"},
	{"ldquo", "&#8220;"},
	{"rdquo", "&#8221;"},
	{"wj", "&#8288;"},
	{"brvbar", "&#166;"},
	{"pp", "&#43;&#43;"},
	{"cpp", "C&#43;&#43;"},
	{"amp", "&"},
	{"lt", "<"},
	{"gt", ">"},
}

// documentDefaults are the default attributes of a document.
var documentDefaults = [][2]string{
	{"doctype", "article"},
	{"backend", "html5"},
	{"basebackend", "html"},
	{"filetype", "html"},
	{"outfilesuffix", ".html"},
	{"attribute-missing", "skip"},
	{"attribute-undefined", "drop-line"},
	{"appendix-caption", "Appendix"},
	{"appendix-refsig", "Appendix"},
	{"caution-caption", "Caution"},
	{"chapter-refsig", "Chapter"},
	{"example-caption", "Example"},
	{"figure-caption", "Figure"},
	{"important-caption", "Important"},
	{"last-update-label", "Last updated"},
	{"note-caption", "Note"},
	{"section-refsig", "Section"},
	{"table-caption", "Table"},
	{"tip-caption", "Tip"},
	{"toc-title", "Table of Contents"},
	{"untitled-label", "Untitled"},
	{"version-label", "Version"},
	{"warning-caption", "Warning"},
	{"idprefix", "_"},
	{"idseparator", "_"},
	{"sectids", ""},
	{"sectnumlevels", "3"},
	{"toclevels", "2"},
	{"max-include-depth", "64"},
	{"iconsdir", "./images/icons"},
	{"prewrap", ""},
	{"stylesdir", "."},
}

// IsIntrinsic returns true for the names of intrinsic attributes.
func IsIntrinsic(name string) bool {
	name = Normalize(name)
	for _, kv := range intrinsics {
		if kv[0] == name {
			return true
		}
	}
	return false
}
