// Package devproc launches and supervises long-running workspace
// processes such as the backend server and the web dev server. Each
// process runs in its own process group so that teardown reaches npm
// wrappers and other children, with SIGTERM escalating to SIGKILL
// after a grace period.
package devproc
