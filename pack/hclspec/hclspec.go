// Package hclspec describes the HCL schema of local .pack manifests.
package hclspec

type Manifest struct {
	Files []File `hcl:"file,block"`
}

// File is a pack file block labelled with its install-root relative path:
//
//	file "mods/jei.jar" {
//	  url  = "https://example.com/jei.jar"
//	  sha1 = "..."
//	  size = 1024
//	}
type File struct {
	Path       string `hcl:"path,label"`
	Kind       string `hcl:"kind,optional"`
	URL        string `hcl:"url,attr"`
	SHA1       string `hcl:"sha1,optional"`
	Size       int64  `hcl:"size,optional"`
	ID         int64  `hcl:"id,optional"`
	Optional   bool   `hcl:"optional,optional"`
	ClientOnly bool   `hcl:"client_only,optional"`
	ServerOnly bool   `hcl:"server_only,optional"`
	Updated    string `hcl:"updated,optional"`
}
