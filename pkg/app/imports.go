package app

// Standard module set compiled into the binary. Each registers itself
// with the core registry via init().
import (
	_ "github.com/parleychat/parley/modules/backup"
	_ "github.com/parleychat/parley/modules/provider/anthropic"
	_ "github.com/parleychat/parley/modules/provider/gemini"
	_ "github.com/parleychat/parley/modules/provider/openai"
	_ "github.com/parleychat/parley/modules/provider/simulated"
	_ "github.com/parleychat/parley/modules/storage/sqlite"

	_ "github.com/parleychat/parley/internal/gateway"
)
