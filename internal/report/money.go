package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var clp = message.NewPrinter(language.MustParse("es-CL"))

// CLP formats whole pesos with Chilean digit grouping, e.g. $19.990.
func CLP(n int64) string {
	return clp.Sprintf("$%d", n)
}
