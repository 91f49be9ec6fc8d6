package lower

import "strings"

// metaTagNames are stripped from DOM output entirely and their children
// are hoisted to the tag's former position (spec.md §4.2). The ranges of
// meta tags among a template's top-level nodes are recorded on
// TemplateMeta.StrippedRanges; meta tags nested inside an element are
// hoisted the same way but their ranges are not recorded.
var metaTagNames = map[string]bool{
	"import": true, "require": true, "bindable": true,
	"use-shadow-dom": true, "containerless": true, "capture": true, "alias": true,
}

// controllerAttrNames identify an element as a template controller host.
// case/default/then/catch/pending select a branch of an existing ancestor
// controller (switch/promise) rather than introducing a new one, so they
// carry a Branch label instead of a Controller name.
var controllerAttrNames = map[string]string{
	"repeat.for": "repeat",
	"if.bind":    "if",
	"switch.bind": "switch",
	"with.bind":   "with",
	"portal.bind": "portal",
}

var branchAttrNames = map[string]string{
	"case":    "case",
	"default": "default",
	"then":    "then",
	"catch":   "catch",
	"pending": "pending",
}

// cmdKind discriminates the parsed form of an attribute name.
type cmdKind int

const (
	cmdNone cmdKind = iota // plain attribute, becomes setAttribute
	cmdPropertyBind
	cmdListener
	cmdRef
	cmdStyleProp // .style
	cmdClassProp // .class
	cmdAttr      // .attr
	cmdLet
)

type parsedCommand struct {
	kind   cmdKind
	target string // bindable/event/style-property/class-name/attr name/let name
	mode   BindingMode
	capture bool
	modifier string
}

// parseAttrName classifies a raw attribute name into a binding command.
// Unrecognized "x.y" forms (dotted name with no matching suffix) report ok
// == false so the caller can emit invalid-command-usage.
func parseAttrName(name string) (parsedCommand, bool) {
	if strings.HasPrefix(name, "let.") || name == "let" {
		target := strings.TrimPrefix(name, "let.")
		return parsedCommand{kind: cmdLet, target: target}, true
	}
	if strings.HasPrefix(name, ".") {
		rest := name[1:]
		switch {
		case strings.HasPrefix(rest, "style"):
			return parsedCommand{kind: cmdStyleProp, target: strings.TrimPrefix(rest, "style.")}, true
		case strings.HasPrefix(rest, "class"):
			return parsedCommand{kind: cmdClassProp, target: strings.TrimPrefix(rest, "class.")}, true
		case strings.HasPrefix(rest, "attr"):
			return parsedCommand{kind: cmdAttr, target: strings.TrimPrefix(rest, "attr.")}, true
		}
		return parsedCommand{}, false
	}

	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return parsedCommand{kind: cmdNone, target: name}, true
	}
	target, cmd := name[:idx], name[idx+1:]

	switch cmd {
	case "bind":
		return parsedCommand{kind: cmdPropertyBind, target: target, mode: ModeDefault}, true
	case "one-time":
		return parsedCommand{kind: cmdPropertyBind, target: target, mode: ModeOneTime}, true
	case "to-view":
		return parsedCommand{kind: cmdPropertyBind, target: target, mode: ModeToView}, true
	case "from-view":
		return parsedCommand{kind: cmdPropertyBind, target: target, mode: ModeFromView}, true
	case "two-way":
		return parsedCommand{kind: cmdPropertyBind, target: target, mode: ModeTwoWay}, true
	case "trigger":
		return parsedCommand{kind: cmdListener, target: target, capture: false}, true
	case "capture":
		return parsedCommand{kind: cmdListener, target: target, capture: true}, true
	case "ref":
		return parsedCommand{kind: cmdRef, target: target}, true
	case "for":
		// consumed by controller detection, not reached as a plain command
		return parsedCommand{}, false
	}
	return parsedCommand{}, false
}

func modeString(m BindingMode) string {
	switch m {
	case ModeOneTime:
		return "one-time"
	case ModeToView:
		return "to-view"
	case ModeFromView:
		return "from-view"
	case ModeTwoWay:
		return "two-way"
	default:
		return "default"
	}
}
