package cmd

import "grimm.is/sockd/internal/i18n"

// Printer formats command output for the user's locale.
var Printer = i18n.NewCLIPrinter()
