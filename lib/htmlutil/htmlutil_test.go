package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "  $1.23 \n", expected: "$1.23"},
		{input: "In stock:\n\t\t 4,521", expected: "In stock: 4,521"},
		{input: "a\u0000b", expected: "ab"},
		{input: "", expected: ""},
	}
	for _, row := range table {
		require.Equal(t, row.expected, CleanText(row.input))
	}
}

func TestSelectionText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<span class="price"> <b>$0.89</b> each </span>
			<span class="price">$1.00</span>
			<div class="empty">   </div>
		</div>
	`))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "$0.89 each", SelectionText(doc.Find("span.price"), "N/A"))
	require.Equal(t, "N/A", SelectionText(doc.Find("div.empty"), "N/A"))
	require.Equal(t, "N/A", SelectionText(doc.Find("span.missing"), "N/A"))
}

func TestNodeTextSkipsScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<p>Qty <script>var x = 1;</script><i>10</i><style>p{}</style>+</p>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Qty 10+", NodeText(doc.Find("p").Nodes[0]))
	require.Equal(t, "", NodeText(nil))
}

func TestAttr(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<a class="product" href=" /p/123 ">x</a><a class="blank" href="">y</a>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "/p/123", Attr(doc.Find("a.product"), "href", ""))
	require.Equal(t, "N/A", Attr(doc.Find("a.blank"), "href", "N/A"))
	require.Equal(t, "N/A", Attr(doc.Find("a.missing"), "href", "N/A"))
}
