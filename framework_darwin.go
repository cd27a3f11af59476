//go:build darwin
// +build darwin

package mediaremote

/*
#cgo CFLAGS: -x objective-c -fblocks
#cgo LDFLAGS: -framework Foundation -framework AppKit -framework CoreFoundation

#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <dispatch/dispatch.h>
#import <Foundation/Foundation.h>
#import <AppKit/AppKit.h>

// The MediaRemote entry points, typed per the reversed headers. They are
// resolved with dlsym, never linked.
typedef void (*mr_get_bool_fn)(dispatch_queue_t queue, void (^handler)(Boolean));
typedef void (*mr_get_pid_fn)(dispatch_queue_t queue, void (^handler)(int));
typedef void (*mr_get_dict_fn)(dispatch_queue_t queue, void (^handler)(CFDictionaryRef));
typedef void (*mr_get_client_fn)(dispatch_queue_t queue, void (^handler)(id));
typedef CFStringRef (*mr_client_string_fn)(id client);
typedef Boolean (*mr_send_command_fn)(int command, id userInfo);
typedef void (*mr_set_elapsed_fn)(double seconds);
typedef void (*mr_set_speed_fn)(int speed);
typedef void (*mr_register_fn)(dispatch_queue_t queue);
typedef void (*mr_unregister_fn)(void);

// Callbacks into Go. Each handle is a runtime/cgo.Handle consumed exactly
// once by the receiver.
extern void goDeliverBool(uintptr_t handle, int value, int ok);
extern void goDeliverPID(uintptr_t handle, int pid, int ok);
extern void goDeliverInfo(uintptr_t handle, CFDictionaryRef dict, int ok);
extern void goDeliverClient(uintptr_t handle, void *client, int ok);
extern void goNotificationFired(uintptr_t handle);

static dispatch_queue_t mr_queue(void) {
	static dispatch_queue_t queue;
	static dispatch_once_t once;
	dispatch_once(&once, ^{
		queue = dispatch_queue_create("mediaremote.query", DISPATCH_QUEUE_SERIAL);
	});
	return queue;
}

static void mr_get_is_playing(void *fn, uintptr_t handle) {
	((mr_get_bool_fn)fn)(mr_queue(), ^(Boolean playing) {
		goDeliverBool(handle, playing ? 1 : 0, 1);
	});
}

static void mr_get_pid(void *fn, uintptr_t handle) {
	((mr_get_pid_fn)fn)(mr_queue(), ^(int pid) {
		goDeliverPID(handle, pid, pid != 0 ? 1 : 0);
	});
}

static void mr_get_info(void *fn, uintptr_t handle) {
	((mr_get_dict_fn)fn)(mr_queue(), ^(CFDictionaryRef dict) {
		// The dictionary is only guaranteed alive inside the block; the
		// Go side converts it before returning.
		goDeliverInfo(handle, dict, dict != NULL ? 1 : 0);
	});
}

static void mr_get_client(void *fn, uintptr_t handle) {
	((mr_get_client_fn)fn)(mr_queue(), ^(id client) {
		goDeliverClient(handle, (void *)client, client != nil ? 1 : 0);
	});
}

// Copies a client property NSString into a malloc'd C string, or NULL.
static char *mr_client_string(void *fn, void *client) {
	CFStringRef str = ((mr_client_string_fn)fn)((id)client);
	if (str == NULL) {
		return NULL;
	}
	CFIndex length = CFStringGetLength(str);
	CFIndex size = CFStringGetMaximumSizeForEncoding(length, kCFStringEncodingUTF8) + 1;
	char *out = malloc(size);
	if (out == NULL || !CFStringGetCString(str, out, size, kCFStringEncodingUTF8)) {
		free(out);
		return NULL;
	}
	return out;
}

static int mr_send_command(void *fn, int command) {
	return ((mr_send_command_fn)fn)(command, nil) ? 1 : 0;
}

static void mr_set_elapsed_time(void *fn, double seconds) {
	((mr_set_elapsed_fn)fn)(seconds);
}

static void mr_set_playback_speed(void *fn, int speed) {
	((mr_set_speed_fn)fn)(speed);
}

static void mr_register(void *fn) {
	((mr_register_fn)fn)(mr_queue());
}

static void mr_unregister(void *fn) {
	((mr_unregister_fn)fn)();
}

// Dictionary access helpers used while converting the info dictionary from
// inside the delivery block.
static const void *mr_dict_key(const void **keys, int i) { return keys[i]; }
static const void *mr_dict_value(const void **values, int i) { return values[i]; }

// Notification observers go through the default NSNotificationCenter, same
// as the framework's own clients do.
static void *mr_add_observer(const char *name, uintptr_t handle) {
	NSString *nsName = [NSString stringWithUTF8String:name];
	id observer = [[NSNotificationCenter defaultCenter]
		addObserverForName:nsName
					object:nil
					 queue:nil
				usingBlock:^(NSNotification *note) {
					goNotificationFired(handle);
				}];
	return (void *)CFBridgingRetain(observer);
}

static void mr_remove_observer(void *observer) {
	id obs = CFBridgingRelease(observer);
	[[NSNotificationCenter defaultCenter] removeObserver:obs];
}

// Looks up an application by bundle identifier and returns its display
// name plus the TIFF bytes of its icon. Returns 0 when not found.
static int mr_lookup_bundle(const char *bundleID, char **name, void **icon, int *iconLen) {
	@autoreleasepool {
		NSWorkspace *workspace = [NSWorkspace sharedWorkspace];
		NSString *identifier = [NSString stringWithUTF8String:bundleID];
		NSURL *url = [workspace URLForApplicationWithBundleIdentifier:identifier];
		if (url == nil) {
			return 0;
		}

		NSString *path = [url path];
		NSString *displayName = [[NSFileManager defaultManager] displayNameAtPath:path];
		*name = strdup([displayName UTF8String]);

		NSImage *image = [workspace iconForFile:path];
		NSData *tiff = [image TIFFRepresentation];
		if (tiff != nil) {
			*iconLen = (int)[tiff length];
			*icon = malloc(*iconLen);
			memcpy(*icon, [tiff bytes], *iconLen);
		} else {
			*icon = NULL;
			*iconLen = 0;
		}
		return 1;
	}
}
*/
import "C"

import (
	"os"
	"runtime/cgo"
	"time"
	"unsafe"

	"github.com/pkg/errors"
)

// frameworkPath is where macOS keeps the private framework. There is no
// public header or SDK stub for it.
const frameworkPath = "/System/Library/PrivateFrameworks/MediaRemote.framework/MediaRemote"

// darwinFramework is the resolved capability table. All symbol pointers
// are bound once at load time so call sites never do runtime lookups.
type darwinFramework struct {
	getIsPlaying   unsafe.Pointer // MRMediaRemoteGetNowPlayingApplicationIsPlaying
	getPID         unsafe.Pointer // MRMediaRemoteGetNowPlayingApplicationPID
	getInfo        unsafe.Pointer // MRMediaRemoteGetNowPlayingInfo
	getClient      unsafe.Pointer // MRMediaRemoteGetNowPlayingClient
	clientBundleID unsafe.Pointer // MRNowPlayingClientGetBundleIdentifier
	clientParentID unsafe.Pointer // MRNowPlayingClientGetParentAppBundleIdentifier
	sendCommandFn  unsafe.Pointer // MRMediaRemoteSendCommand
	setElapsedFn   unsafe.Pointer // MRMediaRemoteSetElapsedTime
	setSpeedFn     unsafe.Pointer // MRMediaRemoteSetPlaybackSpeed
	registerFn     unsafe.Pointer // MRMediaRemoteRegisterForNowPlayingNotifications
	unregisterFn   unsafe.Pointer // MRMediaRemoteUnregisterForNowPlayingNotifications
}

// loadFramework dlopens the bundle and resolves every required symbol.
// Any failure is permanent for the process; callers cache the error.
func loadFramework() (framework, error) {
	if _, err := os.Stat(frameworkPath); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "stat %s: %v", frameworkPath, err)
	}

	cPath := C.CString(frameworkPath)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.RTLD_LAZY|C.RTLD_LOCAL)
	if handle == nil {
		return nil, errors.Wrapf(ErrUnavailable, "dlopen %s: %s", frameworkPath, C.GoString(C.dlerror()))
	}

	fw := &darwinFramework{}
	for _, sym := range []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"MRMediaRemoteGetNowPlayingApplicationIsPlaying", &fw.getIsPlaying},
		{"MRMediaRemoteGetNowPlayingApplicationPID", &fw.getPID},
		{"MRMediaRemoteGetNowPlayingInfo", &fw.getInfo},
		{"MRMediaRemoteGetNowPlayingClient", &fw.getClient},
		{"MRNowPlayingClientGetBundleIdentifier", &fw.clientBundleID},
		{"MRNowPlayingClientGetParentAppBundleIdentifier", &fw.clientParentID},
		{"MRMediaRemoteSendCommand", &fw.sendCommandFn},
		{"MRMediaRemoteSetElapsedTime", &fw.setElapsedFn},
		{"MRMediaRemoteSetPlaybackSpeed", &fw.setSpeedFn},
		{"MRMediaRemoteRegisterForNowPlayingNotifications", &fw.registerFn},
		{"MRMediaRemoteUnregisterForNowPlayingNotifications", &fw.unregisterFn},
	} {
		cName := C.CString(sym.name)
		ptr := C.dlsym(handle, cName)
		C.free(unsafe.Pointer(cName))
		if ptr == nil {
			return nil, errors.Wrapf(ErrUnavailable, "resolve %s", sym.name)
		}
		*sym.dst = ptr
	}

	return fw, nil
}

func (fw *darwinFramework) isPlaying(deliver func(bool, bool)) {
	h := cgo.NewHandle(deliver)
	C.mr_get_is_playing(fw.getIsPlaying, C.uintptr_t(h))
}

func (fw *darwinFramework) applicationPID(deliver func(int, bool)) {
	h := cgo.NewHandle(deliver)
	C.mr_get_pid(fw.getPID, C.uintptr_t(h))
}

func (fw *darwinFramework) nowPlayingInfo(deliver func(map[string]Value, bool)) {
	h := cgo.NewHandle(deliver)
	C.mr_get_info(fw.getInfo, C.uintptr_t(h))
}

func (fw *darwinFramework) nowPlayingClient(deliver func(Client, bool)) {
	h := cgo.NewHandle(&clientDelivery{fw: fw, deliver: deliver})
	C.mr_get_client(fw.getClient, C.uintptr_t(h))
}

func (fw *darwinFramework) sendCommand(id int32) bool {
	return C.mr_send_command(fw.sendCommandFn, C.int(id)) != 0
}

func (fw *darwinFramework) setElapsedTime(seconds float64) {
	C.mr_set_elapsed_time(fw.setElapsedFn, C.double(seconds))
}

func (fw *darwinFramework) setPlaybackSpeed(speed int32) {
	C.mr_set_playback_speed(fw.setSpeedFn, C.int(speed))
}

func (fw *darwinFramework) registerForNotifications() {
	C.mr_register(fw.registerFn)
}

func (fw *darwinFramework) unregisterForNotifications() {
	C.mr_unregister(fw.unregisterFn)
}

// observerEntry keeps a notification callback alive together with the
// retained native observer it belongs to.
type observerEntry struct {
	fn     func()
	native unsafe.Pointer
	handle cgo.Handle
}

func (fw *darwinFramework) addObserver(name string, fn func()) uintptr {
	entry := &observerEntry{fn: fn}
	entry.handle = cgo.NewHandle(entry)

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	entry.native = C.mr_add_observer(cName, C.uintptr_t(entry.handle))

	return uintptr(entry.handle)
}

func (fw *darwinFramework) removeObserver(handle uintptr) {
	h := cgo.Handle(handle)
	entry, ok := h.Value().(*observerEntry)
	if !ok {
		return
	}
	C.mr_remove_observer(entry.native)
	h.Delete()
}

func (fw *darwinFramework) lookupBundle(id string) (string, []byte, bool) {
	cID := C.CString(id)
	defer C.free(unsafe.Pointer(cID))

	var cName *C.char
	var icon unsafe.Pointer
	var iconLen C.int
	if C.mr_lookup_bundle(cID, &cName, &icon, &iconLen) == 0 {
		return "", nil, false
	}
	defer C.free(unsafe.Pointer(cName))

	name := C.GoString(cName)
	var iconBytes []byte
	if icon != nil {
		iconBytes = C.GoBytes(icon, iconLen)
		C.free(icon)
	}
	return name, iconBytes, true
}

// darwinClient borrows the native now-playing client pointer. Valid only
// inside the delivery block that produced it.
type darwinClient struct {
	fw  *darwinFramework
	ref unsafe.Pointer
}

func (c *darwinClient) BundleIdentifier() (string, bool) {
	return c.property(c.fw.clientBundleID)
}

func (c *darwinClient) ParentAppBundleIdentifier() (string, bool) {
	return c.property(c.fw.clientParentID)
}

func (c *darwinClient) property(fn unsafe.Pointer) (string, bool) {
	cStr := C.mr_client_string(fn, c.ref)
	if cStr == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cStr))
	return C.GoString(cStr), true
}

type clientDelivery struct {
	fw      *darwinFramework
	deliver func(Client, bool)
}

//export goDeliverBool
func goDeliverBool(handle C.uintptr_t, value C.int, ok C.int) {
	h := cgo.Handle(handle)
	deliver := h.Value().(func(bool, bool))
	h.Delete()
	deliver(value != 0, ok != 0)
}

//export goDeliverPID
func goDeliverPID(handle C.uintptr_t, pid C.int, ok C.int) {
	h := cgo.Handle(handle)
	deliver := h.Value().(func(int, bool))
	h.Delete()
	deliver(int(pid), ok != 0)
}

//export goDeliverInfo
func goDeliverInfo(handle C.uintptr_t, dict C.CFDictionaryRef, ok C.int) {
	h := cgo.Handle(handle)
	deliver := h.Value().(func(map[string]Value, bool))
	h.Delete()
	if ok == 0 {
		deliver(nil, false)
		return
	}
	// Convert while the dictionary is still alive; nothing native escapes
	// this call.
	deliver(convertInfoDictionary(dict), true)
}

//export goDeliverClient
func goDeliverClient(handle C.uintptr_t, client unsafe.Pointer, ok C.int) {
	h := cgo.Handle(handle)
	d := h.Value().(*clientDelivery)
	h.Delete()
	if ok == 0 {
		d.deliver(nil, false)
		return
	}
	// The darwinClient must not be retained past this call; the deliver
	// chain runs the user callback synchronously.
	d.deliver(&darwinClient{fw: d.fw, ref: client}, true)
}

//export goNotificationFired
func goNotificationFired(handle C.uintptr_t) {
	h := cgo.Handle(handle)
	entry, ok := h.Value().(*observerEntry)
	if !ok {
		return
	}
	entry.fn()
}

// convertInfoDictionary decodes the CFDictionary into plain Go values, one
// rule per native type tag. Unrecognized tags become KindUnsupported so a
// new framework key can never fail the decode.
func convertInfoDictionary(dict C.CFDictionaryRef) map[string]Value {
	count := int(C.CFDictionaryGetCount(dict))
	if count == 0 {
		return map[string]Value{}
	}

	keys := make([]unsafe.Pointer, count)
	values := make([]unsafe.Pointer, count)
	C.CFDictionaryGetKeysAndValues(dict,
		(*unsafe.Pointer)(unsafe.Pointer(&keys[0])),
		(*unsafe.Pointer)(unsafe.Pointer(&values[0])))

	info := make(map[string]Value, count)
	for i := 0; i < count; i++ {
		key := cfStringToGo(C.CFStringRef(keys[i]))
		if key == "" {
			continue
		}
		info[key] = convertCFValue(C.CFTypeRef(values[i]))
	}
	return info
}

func convertCFValue(ref C.CFTypeRef) Value {
	switch C.CFGetTypeID(ref) {
	case C.CFStringGetTypeID():
		return StringValue(cfStringToGo(C.CFStringRef(ref)))
	case C.CFBooleanGetTypeID():
		return BoolValue(C.CFBooleanGetValue(C.CFBooleanRef(ref)) != 0)
	case C.CFNumberGetTypeID():
		return convertCFNumber(C.CFNumberRef(ref))
	case C.CFDateGetTypeID():
		abs := C.CFDateGetAbsoluteTime(C.CFDateRef(ref))
		secs := float64(abs) + float64(C.kCFAbsoluteTimeIntervalSince1970)
		return TimeValue(time.Unix(0, int64(secs*float64(time.Second))))
	case C.CFDataGetTypeID():
		data := C.CFDataRef(ref)
		length := C.int(C.CFDataGetLength(data))
		return DataValue(C.GoBytes(unsafe.Pointer(C.CFDataGetBytePtr(data)), length))
	default:
		return UnsupportedValue()
	}
}

func convertCFNumber(num C.CFNumberRef) Value {
	if C.CFNumberIsFloatType(num) != 0 {
		var f C.double
		C.CFNumberGetValue(num, C.kCFNumberFloat64Type, unsafe.Pointer(&f))
		return FloatValue(float64(f))
	}
	var i C.longlong
	C.CFNumberGetValue(num, C.kCFNumberSInt64Type, unsafe.Pointer(&i))
	return IntValue(int64(i))
}

func cfStringToGo(str C.CFStringRef) string {
	if ptr := C.CFStringGetCStringPtr(str, C.kCFStringEncodingUTF8); ptr != nil {
		return C.GoString(ptr)
	}
	length := C.CFStringGetLength(str)
	size := C.CFStringGetMaximumSizeForEncoding(length, C.kCFStringEncodingUTF8) + 1
	buf := (*C.char)(C.malloc(C.size_t(size)))
	defer C.free(unsafe.Pointer(buf))
	if C.CFStringGetCString(str, buf, size, C.kCFStringEncodingUTF8) == 0 {
		return ""
	}
	return C.GoString(buf)
}
