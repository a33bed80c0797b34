// Package remotezip reads ZIP archives over ranged HTTP without ever
// holding the whole file
//
// Design choices:
// - One size probe plus one central-directory fetch per open; after that the
//   handle is immutable and safe to share across goroutines.
// - Entry reads are a single range request covering local header and payload,
//   guarded by a byte budget that is enforced before the payload fetch goes out.
// - Only stored and raw-deflate entries decode. ZIP64, encryption, and exotic
//   compression methods fail with typed platform errors instead of garbage.
// - No retries and no caching here; both belong to callers who know the policy
package remotezip
