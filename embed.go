package inkwell

import "embed"

// embeddedAssets contains assets shipped with the framework: the utility
// stylesheet consumed by the styles integration and the SVG icon set
// consumed by the icons integration.
//
//go:embed embedded
var embeddedAssets embed.FS
