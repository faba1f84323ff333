package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/token"
)

// dimensional reports entries whose pixel value maps to a platform unit.
func dimensional(e document.Entry) bool {
	switch e.Section {
	case document.Spacing, document.BorderRadius:
		return true
	case document.Grid:
		// a bare column count is not a length
		return e.Value.Kind() == token.KindString
	case document.Typography:
		switch fontProperty(e) {
		case "fontSize", "lineHeight", "letterSpacing":
			return true
		}
	}
	return false
}

func isFontWeight(e document.Entry) bool {
	return e.Section == document.Typography && fontProperty(e) == "fontWeight"
}

// weight returns a numeric font weight snapped to 100..900.
func weight(v token.Value) (int, bool) {
	n, ok := v.Number()
	if !ok {
		switch strings.ToLower(v.Text()) {
		case "normal", "regular":
			return 400, true
		case "bold":
			return 700, true
		default:
			return 0, false
		}
	}
	w := int(math.Round(n/100)) * 100
	return min(max(w, 100), 900), true
}

func generateReactNative(v *view) string {
	value := func(e document.Entry) string {
		if isFontWeight(e) {
			return jsString(e.Text())
		}
		if dimensional(e) {
			if px, ok := pixels(e.Value); ok {
				return formatNumber(px)
			}
		}
		return jsValue(e.Value)
	}

	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("export const theme = {\n")
	writeJS(&b, sectionTree(v.entries), 1, value)
	b.WriteString("} as const;\n\n")
	b.WriteString("export type Theme = typeof theme;\n\n")
	b.WriteString("export default theme;\n")
	return b.String()
}

var swiftKeywords = map[string]bool{
	"case": true, "class": true, "default": true, "enum": true, "extension": true,
	"false": true, "func": true, "import": true, "in": true, "is": true, "let": true,
	"nil": true, "protocol": true, "public": true, "return": true, "self": true,
	"static": true, "struct": true, "switch": true, "true": true, "var": true,
}

var swiftWeights = map[int]string{
	100: ".ultraLight", 200: ".thin", 300: ".light", 400: ".regular", 500: ".medium",
	600: ".semibold", 700: ".bold", 800: ".heavy", 900: ".black",
}

func swiftDeclaration(e document.Entry) string {
	name := identifier(e)
	if swiftKeywords[name] {
		name = "`" + name + "`"
	}

	switch {
	case e.Section == document.Colors:
		if c, ok := parseColor(e.Text()); ok {
			c = c.rounded()
			return fmt.Sprintf("public static let %s = Color(red: %s, green: %s, blue: %s, opacity: %s)",
				name, formatNumber(c.R), formatNumber(c.G), formatNumber(c.B), formatNumber(c.A))
		}
	case isFontWeight(e):
		if w, ok := weight(e.Value); ok {
			return fmt.Sprintf("public static let %s: Font.Weight = %s", name, swiftWeights[w])
		}
	case dimensional(e):
		if px, ok := pixels(e.Value); ok {
			return fmt.Sprintf("public static let %s: CGFloat = %s", name, formatNumber(px))
		}
	case e.Section == document.Animations:
		if ms, ok := milliseconds(e.Value); ok {
			return fmt.Sprintf("public static let %s: TimeInterval = %s", name, formatNumber(ms/1000))
		}
	}

	switch e.Value.Kind() {
	case token.KindNumber:
		return fmt.Sprintf("public static let %s: Double = %s", name, e.Text())
	case token.KindBool:
		return fmt.Sprintf("public static let %s = %s", name, e.Text())
	}
	return fmt.Sprintf("public static let %s = %s", name, doubleQuoted(e.Text()))
}

func generateSwiftUI(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("import SwiftUI\n\n")
	b.WriteString("public enum DesignTokens {\n")
	for i, s := range v.present() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    public enum " + naming.Pascal(string(s)) + " {\n")
		for _, e := range v.section(s) {
			b.WriteString("        " + swiftDeclaration(e) + "\n")
		}
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func composeDeclaration(e document.Entry) string {
	name := naming.Identifier("V", naming.Pascal(e.Key...))

	switch {
	case e.Section == document.Colors:
		if c, ok := parseColor(e.Text()); ok {
			return fmt.Sprintf("val %s = Color(%s)", name, c.argb())
		}
	case isFontWeight(e):
		if w, ok := weight(e.Value); ok {
			return fmt.Sprintf("val %s = FontWeight(%d)", name, w)
		}
	case dimensional(e):
		if px, ok := pixels(e.Value); ok {
			unit := "dp"
			if e.Section == document.Typography {
				unit = "sp"
			}
			return fmt.Sprintf("val %s = %s.%s", name, formatNumber(px), unit)
		}
	case e.Section == document.Animations:
		if ms, ok := milliseconds(e.Value); ok {
			return fmt.Sprintf("const val %s = %d", name, int(math.Round(ms)))
		}
	}

	switch e.Value.Kind() {
	case token.KindNumber, token.KindBool:
		return fmt.Sprintf("const val %s = %s", name, e.Text())
	}
	return fmt.Sprintf("const val %s = %s", name, doubleQuoted(e.Text()))
}

func generateCompose(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("package designtokens\n\n")
	b.WriteString("import androidx.compose.ui.graphics.Color\n")
	b.WriteString("import androidx.compose.ui.text.font.FontWeight\n")
	b.WriteString("import androidx.compose.ui.unit.dp\n")
	b.WriteString("import androidx.compose.ui.unit.sp\n\n")
	b.WriteString("object DesignTokens {\n")
	for i, s := range v.present() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    object " + naming.Pascal(string(s)) + " {\n")
		for _, e := range v.section(s) {
			b.WriteString("        " + composeDeclaration(e) + "\n")
		}
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// dartString quotes s with single quotes, escaping string interpolation.
func dartString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `\$`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

func flutterDeclaration(e document.Entry) string {
	name := identifier(e, e.Section.Prefix())

	switch {
	case e.Section == document.Colors:
		if c, ok := parseColor(e.Text()); ok {
			return fmt.Sprintf("static const Color %s = Color(%s);", name, c.argb())
		}
	case isFontWeight(e):
		if w, ok := weight(e.Value); ok {
			return fmt.Sprintf("static const FontWeight %s = FontWeight.w%d;", name, w)
		}
	case dimensional(e):
		if px, ok := pixels(e.Value); ok {
			return fmt.Sprintf("static const double %s = %s;", name, formatNumber(px))
		}
	case e.Section == document.Animations:
		if ms, ok := milliseconds(e.Value); ok {
			return fmt.Sprintf("static const Duration %s = Duration(milliseconds: %d);", name, int(math.Round(ms)))
		}
	}

	switch e.Value.Kind() {
	case token.KindNumber:
		return fmt.Sprintf("static const double %s = %s;", name, e.Text())
	case token.KindBool:
		return fmt.Sprintf("static const bool %s = %s;", name, e.Text())
	}
	return fmt.Sprintf("static const String %s = %s;", name, dartString(e.Text()))
}

func generateFlutter(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("import 'package:flutter/material.dart';\n\n")
	b.WriteString("class DesignTokens {\n")
	b.WriteString("  DesignTokens._();\n")
	for _, s := range v.present() {
		b.WriteString("\n  // " + sectionTitle(s) + "\n")
		for _, e := range v.section(s) {
			b.WriteString("  " + flutterDeclaration(e) + "\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}
