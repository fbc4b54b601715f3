//go:build windows

package mounts

import (
	"strings"
	"unsafe"

	"go.trai.ch/zerr"
	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetLogicalDrives = kernel32.NewProc("GetLogicalDrives")
	procGetDriveTypeW    = kernel32.NewProc("GetDriveTypeW")
	procQueryDosDeviceW  = kernel32.NewProc("QueryDosDeviceW")
)

const (
	driveRemovable = 2
	driveFixed     = 3
	driveRemote    = 4
	driveCDROM     = 5
	driveRAMDisk   = 6
)

// enumerate returns all active drive letters via Win32 APIs.
func enumerate() ([]Drive, error) {
	mask, _, err := procGetLogicalDrives.Call()
	if mask == 0 {
		return nil, zerr.Wrap(err, "GetLogicalDrives")
	}

	var drives []Drive
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		drives = append(drives, enumerateDrive(string(rune('A'+i))))
	}
	return drives, nil
}

func enumerateDrive(letter string) Drive {
	rootPath := letter + `:\`
	rootPathPtr, _ := windows.UTF16PtrFromString(rootPath)

	driveType, _, _ := procGetDriveTypeW.Call(uintptr(unsafe.Pointer(rootPathPtr)))

	d := Drive{
		Letter: letter,
		Type:   classifyDriveType(uint32(driveType)),
		Label:  volumeLabel(rootPath),
	}

	// QueryDosDevice detects subst drives and resolves their targets.
	deviceNamePtr, _ := windows.UTF16PtrFromString(letter + ":")
	buf := make([]uint16, 1024)
	n, _, _ := procQueryDosDeviceW.Call(
		uintptr(unsafe.Pointer(deviceNamePtr)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if n > 0 {
		target := windows.UTF16ToString(buf[:n])
		if strings.HasPrefix(target, `\??\`) {
			// A subst drive; the real path follows the \??\ prefix.
			d.Type = DriveSubst
			d.Target = target[4:]
		} else if d.Type == DriveNetwork {
			d.Target = target
		}
	}

	return d
}

func volumeLabel(rootPath string) string {
	rootPathPtr, _ := windows.UTF16PtrFromString(rootPath)
	labelBuf := make([]uint16, 256)
	err := windows.GetVolumeInformation(
		rootPathPtr,
		&labelBuf[0],
		uint32(len(labelBuf)),
		nil, nil, nil, nil, 0,
	)
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(labelBuf)
}

func classifyDriveType(t uint32) string {
	switch t {
	case driveFixed:
		return DriveFixed
	case driveRemote:
		return DriveNetwork
	case driveRemovable:
		return DriveRemovable
	case driveCDROM:
		return DriveCDROM
	case driveRAMDisk:
		return DriveRAMDisk
	default:
		return DriveUnknown
	}
}
