// Package selector decides which platform packages and framework packages an
// nRF52 build needs.
//
// Resolution is a fold of ordered rules over a working copy of the
// platform's package table and framework table. Each rule is a predicate on
// the build context and board manifest paired with a transform of the tables.
// The inputs are cloned first, so callers can resolve many builds against one
// loaded platform.
//
// # Rules
//
// DefaultRules evaluates, in order:
//   - adafruit-bsp: boards built on the Adafruit BSP use the Adafruit Arduino core
//   - mbed: pins the toolchain, and the legacy mbed release for deprecated boards
//   - zephyr: marks the Zephyr packages and build tools required
//   - nano33ble: switches the Nano 33 BLE to the mbed based Arduino core
//   - nrfjprog: keeps the Nordic programming tool only when it is needed
//   - jlink: drops the J-Link package when nothing refers to J-Link
//
// # Usage
//
//	reg := board.NewMemoryRegistry()
//	err := reg.LoadDir("platform/boards")
//
//	sel := selector.New(reg, selector.DeprecatedFromFile(
//		selector.DeprecatedBoardsPath("platform")))
//	res, err := sel.Resolve(platform.Packages, platform.Frameworks, selector.BuildContext{
//		Board:      "nrf52_dk",
//		Frameworks: []string{"zephyr"},
//	})
//	for _, name := range res.Packages.Required() {
//		fmt.Println(name)
//	}
package selector
