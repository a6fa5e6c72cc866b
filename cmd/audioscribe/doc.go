// Command audioscribe downloads the audio behind a YouTube, podcast feed,
// Apple Podcasts, direct audio or web page URL and transcribes it offline
// with whisper.cpp.
//
//	audioscribe run https://example.com/feed.xml
//	audioscribe classify https://podcasts.apple.com/us/podcast/id123
//	audioscribe doctor
package main
