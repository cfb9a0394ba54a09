// Package dbus exports the notification stack on the session bus as the
// io.github.jmylchreest.Toastd interface. It provides a server with methods
// for Enqueue, Dismiss, DismissAll, InvokeAction and List, the
// NotificationRemoved and ActionInvoked signals, and a client used by toastctl.
package dbus
