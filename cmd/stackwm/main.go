// Command stackwm is a stack-oriented tiling window manager for X11.
package main

func main() {
	Execute()
}
