package handle

// PickerResult is the outcome of one pick operation. Expected failures
// (cancellation, unsupported operation, host errors) are values, never panics.
type PickerResult struct {
	Success bool
	Type    Type

	Handles []Entry // Type native
	Files   []*File // Type fallback

	Error         string
	UserCancelled bool
}

// NativeResult reports host handles.
func NativeResult(handles ...Entry) PickerResult {
	return PickerResult{Success: true, Type: TypeNative, Handles: handles}
}

// FallbackResult reports captured files.
func FallbackResult(files []*File) PickerResult {
	return PickerResult{Success: true, Type: TypeFallback, Files: files}
}

// CancelledResult reports that the user dismissed the picker.
func CancelledResult() PickerResult {
	return PickerResult{Error: "user cancelled", UserCancelled: true}
}

// FailedResult reports a real failure.
func FailedResult(message string) PickerResult {
	return PickerResult{Error: message}
}

// AppHandles converts a file pick into AppHandles, one per file.
func (r PickerResult) AppHandles() []AppHandle {
	if !r.Success {
		return nil
	}
	var out []AppHandle
	switch r.Type {
	case TypeNative:
		for _, h := range r.Handles {
			out = append(out, NativeApp(h))
		}
	case TypeFallback:
		for _, f := range r.Files {
			out = append(out, FallbackFileApp(f))
		}
	}
	return out
}

// DirectoryApp converts a directory pick into a single AppHandle.
func (r PickerResult) DirectoryApp() (AppHandle, bool) {
	if !r.Success {
		return AppHandle{}, false
	}
	switch r.Type {
	case TypeNative:
		if len(r.Handles) == 0 || r.Handles[0].Kind() != KindDirectory {
			return AppHandle{}, false
		}
		return NativeApp(r.Handles[0]), true
	case TypeFallback:
		return FallbackDirectoryApp("", r.Files), true
	}
	return AppHandle{}, false
}
