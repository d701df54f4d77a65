package modkit

import "agora/internal/modkit/module"

// Module is what api mounts; see module.Module
type Module = module.Module
