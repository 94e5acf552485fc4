// Package theme loads the CSS that styles snackbar windows. Themes are
// resolved from ~/.config/snackbar/themes/ first and the bundled themes
// second, with @import statements inlined. User themes are watched and
// reapplied when they or their imports change.
package theme
