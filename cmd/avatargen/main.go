// avatargen builds textured 3D head-and-shoulders avatars in GLB format from
// facial landmark detections.
package main

func main() {
	Execute()
}
