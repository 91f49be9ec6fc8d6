package discovery

import "strings"

// patternMatch classifies one ClassFact by the first matching pattern in
// priority order — decorator, then static $au, then define-call, then
// naming convention — per spec.md §4.3 stage 4 ("first match wins").
// Returns false if nothing about cf looks like a resource at all.
func patternMatch(cf ClassFact) (kind ResourceKind, name string, source EvidenceSourceKind, ok bool) {
	if kind, name, ok := matchDecorator(cf); ok {
		return kind, name, SourceDecorator, true
	}
	if kind, name, ok := matchStaticAu(cf); ok {
		return kind, name, SourceStaticAu, true
	}
	if kind, name, ok := matchDefineCall(cf); ok {
		return kind, name, SourceDefineCall, true
	}
	if kind, name, ok := matchConvention(cf); ok {
		return kind, name, SourceConvention, true
	}
	return 0, "", 0, false
}

var decoratorKinds = map[string]ResourceKind{
	"customElement":      KindCustomElement,
	"customAttribute":    KindCustomAttribute,
	"templateController": KindTemplateController,
	"valueConverter":      KindValueConverter,
	"bindingBehavior":     KindBindingBehavior,
}

func matchDecorator(cf ClassFact) (ResourceKind, string, bool) {
	for _, d := range cf.Decorators {
		if kind, known := decoratorKinds[d.Name]; known {
			name := deriveNameFromArgs(d.Args, cf.DeclaredName, string(kind.String()))
			return kind, name, true
		}
	}
	return 0, "", false
}

func matchStaticAu(cf ClassFact) (ResourceKind, string, bool) {
	if cf.StaticAu == nil {
		return 0, "", false
	}
	kindText, _ := cf.StaticAu["type"].(string)
	for label, kind := range decoratorKinds {
		if kindText == label {
			name, _ := cf.StaticAu["name"].(string)
			if name == "" {
				name = conventionName(cf.DeclaredName, kind)
			}
			return kind, name, true
		}
	}
	return 0, "", false
}

func matchDefineCall(cf ClassFact) (ResourceKind, string, bool) {
	for _, dc := range cf.DefineCalls {
		for label, kind := range decoratorKinds {
			if dc.ResourceKind == label {
				name := dc.Name
				if name == "" {
					name = conventionName(cf.DeclaredName, kind)
				}
				return kind, name, true
			}
		}
	}
	return 0, "", false
}

// matchConvention applies the naming-suffix + sibling-template heuristic:
// a class named "FooCustomElement" (or paired with a sibling foo.html) is
// treated as a customElement named "foo" without any explicit annotation.
func matchConvention(cf ClassFact) (ResourceKind, string, bool) {
	suffixes := []struct {
		suffix string
		kind   ResourceKind
	}{
		{"CustomElement", KindCustomElement},
		{"CustomAttribute", KindCustomAttribute},
		{"TemplateController", KindTemplateController},
		{"ValueConverter", KindValueConverter},
		{"BindingBehavior", KindBindingBehavior},
	}
	for _, s := range suffixes {
		if strings.HasSuffix(cf.DeclaredName, s.suffix) && cf.DeclaredName != s.suffix {
			return s.kind, conventionName(strings.TrimSuffix(cf.DeclaredName, s.suffix), s.kind), true
		}
	}
	if cf.SiblingTemplateFile != "" {
		return KindCustomElement, conventionName(cf.DeclaredName, KindCustomElement), true
	}
	return 0, "", false
}

func deriveNameFromArgs(args []any, className string, kind string) string {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			return s
		}
		if m, ok := args[0].(map[string]any); ok {
			if s, ok := m["name"].(string); ok {
				return s
			}
		}
	}
	return conventionName(className, decoratorKinds[kind])
}

// conventionName kebab-cases className for element/attribute names
// (Aurelia's naming convention: "MyWidget" -> "my-widget").
func conventionName(className string, _ ResourceKind) string {
	var b strings.Builder
	for i, r := range className {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
