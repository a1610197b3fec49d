package pack

import (
	"time"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/tie/modinstaller/models"
)

// Encode writes files as a formatted .pack manifest. Attributes holding
// their zero value are omitted, except url.
func Encode(files []models.PackFile) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, pf := range files {
		if i > 0 {
			body.AppendNewline()
		}
		b := body.AppendNewBlock("file", []string{pf.Path()}).Body()
		if pf.Kind != models.KindMod {
			b.SetAttributeValue("kind", cty.StringVal(pf.Kind.String()))
		}
		b.SetAttributeValue("url", cty.StringVal(pf.URL))
		if pf.SHA1 != "" {
			b.SetAttributeValue("sha1", cty.StringVal(pf.SHA1))
		}
		if pf.Size != 0 {
			b.SetAttributeValue("size", cty.NumberIntVal(pf.Size))
		}
		if pf.ID != 0 {
			b.SetAttributeValue("id", cty.NumberUIntVal(uint64(pf.ID)))
		}
		if pf.Optional {
			b.SetAttributeValue("optional", cty.True)
		}
		if pf.ClientOnly {
			b.SetAttributeValue("client_only", cty.True)
		}
		if pf.ServerOnly {
			b.SetAttributeValue("server_only", cty.True)
		}
		if !pf.Updated.IsZero() {
			b.SetAttributeValue("updated", cty.StringVal(pf.Updated.UTC().Format(time.RFC3339)))
		}
	}
	return hclwrite.Format(f.Bytes())
}
