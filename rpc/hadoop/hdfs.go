package hadoop

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// Shared types
// --------------------------------------------------------------------------

// FileType mirrors the HdfsFileStatusProto.FileType enum.
type FileType int32

const (
	FileTypeDir     FileType = 1
	FileTypeFile    FileType = 2
	FileTypeSymlink FileType = 3
)

func (t FileType) String() string {
	switch t {
	case FileTypeDir:
		return "d"
	case FileTypeSymlink:
		return "s"
	default:
		return "f"
	}
}

// FsPermission carries the octal permission bits of a path.
type FsPermission struct {
	Perm uint32
}

func (p FsPermission) marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(p.Perm))
	return buf
}

func unmarshalPermission(b []byte) (FsPermission, error) {
	var p FsPermission
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			p.Perm = uint32(d.varint())
		} else {
			d.skip(num, typ)
		}
	}
	return p, d.err
}

// FileStatus is the metadata the NameNode reports for one path. Path holds
// only the last component for listing entries and is empty for the listing
// root itself.
type FileStatus struct {
	FileType         FileType
	Path             string
	Length           uint64
	Permission       FsPermission
	Owner            string
	Group            string
	ModificationTime uint64
	AccessTime       uint64
	BlockReplication uint32
	BlockSize        uint64
}

// IsDir reports whether the status describes a directory.
func (fs *FileStatus) IsDir() bool {
	return fs.FileType == FileTypeDir
}

func (fs *FileStatus) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(fs.FileType))
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, fs.Path)
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, fs.Length)
	buf = protowire.AppendTag(buf, 4, protowire.BytesType)
	buf = protowire.AppendBytes(buf, fs.Permission.marshal())
	buf = protowire.AppendTag(buf, 5, protowire.BytesType)
	buf = protowire.AppendString(buf, fs.Owner)
	buf = protowire.AppendTag(buf, 6, protowire.BytesType)
	buf = protowire.AppendString(buf, fs.Group)
	buf = protowire.AppendTag(buf, 7, protowire.VarintType)
	buf = protowire.AppendVarint(buf, fs.ModificationTime)
	buf = protowire.AppendTag(buf, 8, protowire.VarintType)
	buf = protowire.AppendVarint(buf, fs.AccessTime)
	if fs.BlockReplication != 0 {
		buf = protowire.AppendTag(buf, 10, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(fs.BlockReplication))
	}
	if fs.BlockSize != 0 {
		buf = protowire.AppendTag(buf, 11, protowire.VarintType)
		buf = protowire.AppendVarint(buf, fs.BlockSize)
	}
	return buf
}

func UnmarshalFileStatus(b []byte) (*FileStatus, error) {
	fs := &FileStatus{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			fs.FileType = FileType(d.varint())
		case 2:
			fs.Path = d.string()
		case 3:
			fs.Length = d.varint()
		case 4:
			perm, err := unmarshalPermission(d.bytes())
			if err != nil {
				return nil, err
			}
			fs.Permission = perm
		case 5:
			fs.Owner = d.string()
		case 6:
			fs.Group = d.string()
		case 7:
			fs.ModificationTime = d.varint()
		case 8:
			fs.AccessTime = d.varint()
		case 10:
			fs.BlockReplication = uint32(d.varint())
		case 11:
			fs.BlockSize = d.varint()
		default:
			d.skip(num, typ)
		}
	}
	return fs, d.err
}

// DirectoryListing is one page of a directory listing. RemainingEntries is
// non-zero when the server has more entries past the last one returned.
type DirectoryListing struct {
	Entries          []*FileStatus
	RemainingEntries uint32
}

func (l *DirectoryListing) Marshal() []byte {
	var buf []byte
	for _, e := range l.Entries {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Marshal())
	}
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(l.RemainingEntries))
	return buf
}

func unmarshalDirectoryListing(b []byte) (*DirectoryListing, error) {
	l := &DirectoryListing{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			entry, err := UnmarshalFileStatus(d.bytes())
			if err != nil {
				return nil, err
			}
			l.Entries = append(l.Entries, entry)
		case 2:
			l.RemainingEntries = uint32(d.varint())
		default:
			d.skip(num, typ)
		}
	}
	return l, d.err
}

// ContentSummary aggregates usage and quota information below a path.
type ContentSummary struct {
	Length         uint64
	FileCount      uint64
	DirectoryCount uint64
	Quota          uint64
	SpaceConsumed  uint64
	SpaceQuota     uint64
}

func (s *ContentSummary) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.Length)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.FileCount)
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.DirectoryCount)
	buf = protowire.AppendTag(buf, 4, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.Quota)
	buf = protowire.AppendTag(buf, 5, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.SpaceConsumed)
	buf = protowire.AppendTag(buf, 6, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.SpaceQuota)
	return buf
}

func unmarshalContentSummary(b []byte) (*ContentSummary, error) {
	s := &ContentSummary{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			s.Length = d.varint()
		case 2:
			s.FileCount = d.varint()
		case 3:
			s.DirectoryCount = d.varint()
		case 4:
			s.Quota = d.varint()
		case 5:
			s.SpaceConsumed = d.varint()
		case 6:
			s.SpaceQuota = d.varint()
		default:
			d.skip(num, typ)
		}
	}
	return s, d.err
}

// FsStats is the filesystem-wide capacity report behind df.
type FsStats struct {
	Capacity        uint64
	Used            uint64
	Remaining       uint64
	UnderReplicated uint64
	CorruptBlocks   uint64
	MissingBlocks   uint64
}

// FsServerDefaults carries the server-side defaults used when the client
// does not specify replication or block size explicitly.
type FsServerDefaults struct {
	BlockSize           uint64
	BytesPerChecksum    uint32
	WritePacketSize     uint32
	Replication         uint32
	FileBufferSize      uint32
	EncryptDataTransfer bool
	TrashInterval       uint64
	ChecksumType        int32
}

func (d *FsServerDefaults) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, d.BlockSize)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(d.BytesPerChecksum))
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(d.WritePacketSize))
	buf = protowire.AppendTag(buf, 4, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(d.Replication))
	buf = protowire.AppendTag(buf, 5, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(d.FileBufferSize))
	buf = protowire.AppendTag(buf, 6, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(d.EncryptDataTransfer))
	buf = protowire.AppendTag(buf, 7, protowire.VarintType)
	buf = protowire.AppendVarint(buf, d.TrashInterval)
	buf = protowire.AppendTag(buf, 8, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(d.ChecksumType))
	return buf
}

// --------------------------------------------------------------------------
// ClientProtocol requests
// --------------------------------------------------------------------------

// GetListingRequest asks for one page of a directory listing. StartAfter
// holds the last path component of the previous page when paginating.
type GetListingRequest struct {
	Src          string
	StartAfter   []byte
	NeedLocation bool
}

func (r *GetListingRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, r.StartAfter)
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(r.NeedLocation))
	return buf
}

// UnmarshalGetListingRequest is used by in-process test servers.
func UnmarshalGetListingRequest(b []byte) (*GetListingRequest, error) {
	r := &GetListingRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			r.Src = d.string()
		case 2:
			r.StartAfter = d.bytes()
		case 3:
			r.NeedLocation = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type GetFileInfoRequest struct {
	Src string
}

func (r *GetFileInfoRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	return buf
}

// UnmarshalGetFileInfoRequest is used by in-process test servers.
func UnmarshalGetFileInfoRequest(b []byte) (*GetFileInfoRequest, error) {
	r := &GetFileInfoRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			r.Src = d.string()
		} else {
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type MkdirsRequest struct {
	Src          string
	Masked       FsPermission
	CreateParent bool
}

func (r *MkdirsRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, r.Masked.marshal())
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(r.CreateParent))
	return buf
}

// UnmarshalMkdirsRequest is used by in-process test servers.
func UnmarshalMkdirsRequest(b []byte) (*MkdirsRequest, error) {
	r := &MkdirsRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			r.Src = d.string()
		case 2:
			perm, err := unmarshalPermission(d.bytes())
			if err != nil {
				return nil, err
			}
			r.Masked = perm
		case 3:
			r.CreateParent = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type DeleteRequest struct {
	Src       string
	Recursive bool
}

func (r *DeleteRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(r.Recursive))
	return buf
}

// UnmarshalDeleteRequest is used by in-process test servers.
func UnmarshalDeleteRequest(b []byte) (*DeleteRequest, error) {
	r := &DeleteRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			r.Src = d.string()
		case 2:
			r.Recursive = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type RenameRequest struct {
	Src string
	Dst string
}

func (r *RenameRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Dst)
	return buf
}

// UnmarshalRenameRequest is used by in-process test servers.
func UnmarshalRenameRequest(b []byte) (*RenameRequest, error) {
	r := &RenameRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			r.Src = d.string()
		case 2:
			r.Dst = d.string()
		default:
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type SetPermissionRequest struct {
	Src        string
	Permission FsPermission
}

func (r *SetPermissionRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, r.Permission.marshal())
	return buf
}

// SetOwnerRequest changes owner and/or group; either may be empty to leave
// it untouched (chgrp sends only the group).
type SetOwnerRequest struct {
	Src      string
	Username string
	Group    string
}

func (r *SetOwnerRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	if r.Username != "" {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendString(buf, r.Username)
	}
	if r.Group != "" {
		buf = protowire.AppendTag(buf, 3, protowire.BytesType)
		buf = protowire.AppendString(buf, r.Group)
	}
	return buf
}

type SetReplicationRequest struct {
	Src         string
	Replication uint32
}

func (r *SetReplicationRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.Replication))
	return buf
}

// GetFsStatusRequest has no fields; getFsStats takes no arguments.
type GetFsStatusRequest struct{}

func (r *GetFsStatusRequest) Marshal() []byte { return []byte{} }

type GetContentSummaryRequest struct {
	Path string
}

func (r *GetContentSummaryRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Path)
	return buf
}

// UnmarshalGetContentSummaryRequest is used by in-process test servers.
func UnmarshalGetContentSummaryRequest(b []byte) (*GetContentSummaryRequest, error) {
	r := &GetContentSummaryRequest{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			r.Path = d.string()
		} else {
			d.skip(num, typ)
		}
	}
	return r, d.err
}

type GetServerDefaultsRequest struct{}

func (r *GetServerDefaultsRequest) Marshal() []byte { return []byte{} }

// CreateRequest opens a new zero-length file. Only the touchz code path
// uses it; block writing is out of scope.
type CreateRequest struct {
	Src          string
	Masked       FsPermission
	ClientName   string
	CreateFlag   uint32
	CreateParent bool
	Replication  uint32
	BlockSize    uint64
}

// Create flag bits.
const (
	CreateFlagCreate    uint32 = 0x01
	CreateFlagOverwrite uint32 = 0x02
)

func (r *CreateRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, r.Masked.marshal())
	buf = protowire.AppendTag(buf, 3, protowire.BytesType)
	buf = protowire.AppendString(buf, r.ClientName)
	buf = protowire.AppendTag(buf, 4, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.CreateFlag))
	buf = protowire.AppendTag(buf, 5, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(r.CreateParent))
	buf = protowire.AppendTag(buf, 6, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.Replication))
	buf = protowire.AppendTag(buf, 7, protowire.VarintType)
	buf = protowire.AppendVarint(buf, r.BlockSize)
	return buf
}

type CompleteRequest struct {
	Src        string
	ClientName string
}

func (r *CompleteRequest) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, r.Src)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, r.ClientName)
	return buf
}

// --------------------------------------------------------------------------
// ClientProtocol responses
// --------------------------------------------------------------------------

// boolResponse covers the many responses that carry a single bool result
// in field 1 (mkdirs, delete, rename, setReplication, complete).
func unmarshalBoolResponse(b []byte) (bool, error) {
	result := false
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			result = d.varint() != 0
		} else {
			d.skip(num, typ)
		}
	}
	return result, d.err
}

func UnmarshalMkdirsResponse(b []byte) (bool, error)         { return unmarshalBoolResponse(b) }
func UnmarshalDeleteResponse(b []byte) (bool, error)         { return unmarshalBoolResponse(b) }
func UnmarshalRenameResponse(b []byte) (bool, error)         { return unmarshalBoolResponse(b) }
func UnmarshalSetReplicationResponse(b []byte) (bool, error) { return unmarshalBoolResponse(b) }
func UnmarshalCompleteResponse(b []byte) (bool, error)       { return unmarshalBoolResponse(b) }

// MarshalBoolResponse builds the single-bool response payload; it exists
// for in-process test servers.
func MarshalBoolResponse(result bool) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(result))
	return buf
}

// UnmarshalGetListingResponse returns nil when the path does not exist;
// the dirList field is absent in that case.
func UnmarshalGetListingResponse(b []byte) (*DirectoryListing, error) {
	var listing *DirectoryListing
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			l, err := unmarshalDirectoryListing(d.bytes())
			if err != nil {
				return nil, err
			}
			listing = l
		} else {
			d.skip(num, typ)
		}
	}
	return listing, d.err
}

// MarshalGetListingResponse is used by in-process test servers.
func MarshalGetListingResponse(l *DirectoryListing) []byte {
	if l == nil {
		return []byte{}
	}
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, l.Marshal())
	return buf
}

// UnmarshalGetFileInfoResponse returns nil when the path does not exist.
func UnmarshalGetFileInfoResponse(b []byte) (*FileStatus, error) {
	var status *FileStatus
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			fs, err := UnmarshalFileStatus(d.bytes())
			if err != nil {
				return nil, err
			}
			status = fs
		} else {
			d.skip(num, typ)
		}
	}
	return status, d.err
}

// MarshalGetFileInfoResponse is used by in-process test servers. A nil
// status yields the empty payload the NameNode sends for missing paths.
func MarshalGetFileInfoResponse(fs *FileStatus) []byte {
	if fs == nil {
		return []byte{}
	}
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, fs.Marshal())
	return buf
}

func UnmarshalGetFsStatsResponse(b []byte) (*FsStats, error) {
	s := &FsStats{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			s.Capacity = d.varint()
		case 2:
			s.Used = d.varint()
		case 3:
			s.Remaining = d.varint()
		case 4:
			s.UnderReplicated = d.varint()
		case 5:
			s.CorruptBlocks = d.varint()
		case 6:
			s.MissingBlocks = d.varint()
		default:
			d.skip(num, typ)
		}
	}
	return s, d.err
}

// MarshalGetFsStatsResponse is used by in-process test servers.
func MarshalGetFsStatsResponse(s *FsStats) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.Capacity)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.Used)
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.Remaining)
	buf = protowire.AppendTag(buf, 4, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.UnderReplicated)
	buf = protowire.AppendTag(buf, 5, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.CorruptBlocks)
	buf = protowire.AppendTag(buf, 6, protowire.VarintType)
	buf = protowire.AppendVarint(buf, s.MissingBlocks)
	return buf
}

func UnmarshalGetContentSummaryResponse(b []byte) (*ContentSummary, error) {
	var summary *ContentSummary
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			s, err := unmarshalContentSummary(d.bytes())
			if err != nil {
				return nil, err
			}
			summary = s
		} else {
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	if summary == nil {
		summary = &ContentSummary{}
	}
	return summary, nil
}

// MarshalGetContentSummaryResponse is used by in-process test servers.
func MarshalGetContentSummaryResponse(s *ContentSummary) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, s.Marshal())
	return buf
}

func UnmarshalGetServerDefaultsResponse(b []byte) (*FsServerDefaults, error) {
	defaults := &FsServerDefaults{}
	d := newFieldReader(b)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		if num == 1 {
			inner := newFieldReader(d.bytes())
			for {
				n2, t2, ok2 := inner.next()
				if !ok2 {
					break
				}
				switch n2 {
				case 1:
					defaults.BlockSize = inner.varint()
				case 2:
					defaults.BytesPerChecksum = uint32(inner.varint())
				case 3:
					defaults.WritePacketSize = uint32(inner.varint())
				case 4:
					defaults.Replication = uint32(inner.varint())
				case 5:
					defaults.FileBufferSize = uint32(inner.varint())
				case 6:
					defaults.EncryptDataTransfer = inner.varint() != 0
				case 7:
					defaults.TrashInterval = inner.varint()
				case 8:
					defaults.ChecksumType = int32(inner.varint())
				default:
					inner.skip(n2, t2)
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		} else {
			d.skip(num, typ)
		}
	}
	return defaults, d.err
}

// MarshalGetServerDefaultsResponse is used by in-process test servers.
func MarshalGetServerDefaultsResponse(defaults *FsServerDefaults) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, defaults.Marshal())
	return buf
}
