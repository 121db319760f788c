package motionlite

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"
)

// CoreType selects a CPU cluster on big.LITTLE boards.  Pinning the process
// to the fast cluster keeps estimator pool scheduling latency stable while
// the accelerator handles the model itself.
type CoreType int

const (
	FastCores CoreType = 0
	SlowCores CoreType = 1
	AllCores  CoreType = 2
)

// platformCores maps a Rockchip platform name to the affinity mask of each
// core cluster.  Platforms with a single uniform cluster map every CoreType
// to the same mask.
var platformCores = map[string]map[CoreType]uintptr{
	// cortex A53 cores 0-3
	"rk3562": {
		FastCores: 0b00001111,
		SlowCores: 0b00001111,
		AllCores:  0b00001111,
	},
	// cortex A55 (1.6Ghz) cores 0-3
	"rk3566": {
		FastCores: 0b00001111,
		SlowCores: 0b00001111,
		AllCores:  0b00001111,
	},
	// cortex A55 (2Ghz) cores 0-3
	"rk3568": {
		FastCores: 0b00001111,
		SlowCores: 0b00001111,
		AllCores:  0b00001111,
	},
	// cortex A72 cores 4-7, cortex A53 cores 0-3
	"rk3576": {
		FastCores: 0b11110000,
		SlowCores: 0b00001111,
		AllCores:  0b11111111,
	},
	// cortex A76 cores 4-5, cortex A55 cores 0-3
	"rk3582": {
		FastCores: 0b00110000,
		SlowCores: 0b00001111,
		AllCores:  0b00111111,
	},
	// cortex A76 cores 4-7, cortex A55 cores 0-3
	"rk3588": {
		FastCores: 0b11110000,
		SlowCores: 0b00001111,
		AllCores:  0b11111111,
	},
}

// SetCPUAffinity sets the CPU affinity mask of the program to run on the
// specified cores
func SetCPUAffinity(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the current CPU affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// CPUCoreMask calculates the affinity mask covering the given CPU core
// numbers, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// SetCPUAffinityByPlatform sets the CPU affinity mask of the program to the
// given cluster of a platform named
// rk3562|rk3566|rk3568|rk3576|rk3582|rk3588
func SetCPUAffinityByPlatform(platform string, ct CoreType) error {

	platform = strings.ToLower(strings.TrimSpace(platform))

	clusters, ok := platformCores[platform]

	if !ok {
		return fmt.Errorf("%w: unknown platform %s", ErrInvalidArgument,
			platform)
	}

	mask, ok := clusters[ct]

	if !ok {
		return fmt.Errorf("%w: unknown core type %d", ErrInvalidArgument, ct)
	}

	return SetCPUAffinity(mask)
}
