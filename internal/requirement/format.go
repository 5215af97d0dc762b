package requirement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stellarlinkco/aptname/internal/textindex"
)

var placeholder = regexp.MustCompile(`\{(\d+)(?:\|([^|{}]*)\|([^|{}]*))?\}`)

// Format fills a message template. {0} is replaced by the first argument;
// {0|을|를} becomes 을 when the first argument ends in a batchim and 를
// otherwise. Placeholders without a matching argument are left as written.
func Format(template string, args ...any) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		i, err := strconv.Atoi(sub[1])
		if err != nil || i >= len(args) {
			return m
		}
		word := fmt.Sprint(args[i])
		if !strings.Contains(m, "|") {
			return word
		}
		if textindex.HasBatchim(word) {
			return sub[2]
		}
		return sub[3]
	})
}
