package sentiment

// Color returns the hex accent color used by UIs when rendering a
// sentiment label.
func Color(sentiment string) string {
	switch sentiment {
	case "Positive":
		return "#2ecc71"
	case "Negative":
		return "#e74c3c"
	case "Mixed":
		return "#f39c12"
	default:
		return "#95a5a6"
	}
}

// Icon returns a small glyph for the sentiment label.
func Icon(sentiment string) string {
	switch sentiment {
	case "Positive":
		return "😊"
	case "Negative":
		return "😟"
	case "Mixed":
		return "😐"
	default:
		return "ℹ️"
	}
}
